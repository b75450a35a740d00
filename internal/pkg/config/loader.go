// Package config provides environment loaders that validate each value and
// fall back to a default instead of failing. Services built on it always start
// with a usable configuration; every fallback is reported so it can be logged
// and counted.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Result is the outcome of loading one environment variable.
type Result[T any] struct {
	Key   string
	Value T
	// Warning explains why the default was used. Empty unless FallbackApplied.
	Warning         string
	FallbackApplied bool
}

// Validator checks a parsed value. A nil Validator accepts everything.
type Validator[T any] func(T) error

// Load reads envKey, parses it and validates the result. An unset or blank
// variable yields def without a fallback; a parse or validation error yields
// def with FallbackApplied set.
//
// Example:
//
//	r := config.Load("RUN_TIMEOUT", 30*time.Minute, time.ParseDuration,
//	    func(d time.Duration) error { return config.ValidateDuration(d, time.Minute, 4*time.Hour) })
func Load[T any](envKey string, def T, parse func(string) (T, error), validate Validator[T]) Result[T] {
	raw := strings.TrimSpace(os.Getenv(envKey))
	if raw == "" {
		return Result[T]{Key: envKey, Value: def}
	}

	v, err := parse(raw)
	if err != nil {
		return fallback(envKey, raw, def, fmt.Errorf("parse: %w", err))
	}
	if validate != nil {
		if err := validate(v); err != nil {
			return fallback(envKey, raw, def, err)
		}
	}
	return Result[T]{Key: envKey, Value: v}
}

func fallback[T any](envKey, raw string, def T, err error) Result[T] {
	return Result[T]{
		Key:             envKey,
		Value:           def,
		Warning:         fmt.Sprintf("invalid %s=%q: %v, falling back to default %v", envKey, raw, err, def),
		FallbackApplied: true,
	}
}

// LoadString loads a string value.
func LoadString(envKey, def string, validate Validator[string]) Result[string] {
	return Load(envKey, def, func(s string) (string, error) { return s, nil }, validate)
}

// LoadInt loads a base-10 integer.
func LoadInt(envKey string, def int, validate Validator[int]) Result[int] {
	return Load(envKey, def, strconv.Atoi, validate)
}

// LoadDuration loads a Go duration string such as "90s" or "30m".
func LoadDuration(envKey string, def time.Duration, validate Validator[time.Duration]) Result[time.Duration] {
	return Load(envKey, def, time.ParseDuration, validate)
}

// LoadBool accepts true/false, 1/0, yes/no and on/off, case-insensitively.
func LoadBool(envKey string, def bool) Result[bool] {
	return Load(envKey, def, parseBool, nil)
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "1", "t", "true", "yes", "y", "on":
		return true, nil
	case "0", "f", "false", "no", "n", "off":
		return false, nil
	}
	return false, fmt.Errorf("%q is not a boolean", s)
}
