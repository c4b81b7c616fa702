package obs

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTime_LogsRequestIDAndError(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(prev) })

	ctx := WithRequestID(context.Background(), "abc")
	err := errors.New("boom")
	Time(ctx, "reduce")(&err)
	Time(ctx, "solve")(nil)

	out := buf.String()
	assert.Contains(t, out, "req_id=abc op=reduce")
	assert.Contains(t, out, "err=boom")
	assert.Contains(t, out, "req_id=abc op=solve")
	assert.Equal(t, "abc", RequestID(ctx))
	assert.Equal(t, "", RequestID(context.Background()))
}
