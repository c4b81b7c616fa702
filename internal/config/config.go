// Package config reads service settings from the environment and an optional
// YAML solver file.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

// Get returns the value of key, or fallback when it is unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func GetInt(key string, fallback int) int {
	v := Get(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("config: invalid int key=%s value=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func GetFloat(key string, fallback float64) float64 {
	v := Get(key, "")
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("config: invalid float key=%s value=%q, using %v", key, v, fallback)
		return fallback
	}
	return f
}
