package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func NonEmpty(value, envName string) error {
	if value == "" {
		return fmt.Errorf("missing required env %s", envName)
	}
	return nil
}

func NonEmptyBytes(value []byte, envName string) error {
	if len(value) == 0 {
		return fmt.Errorf("missing required env %s", envName)
	}
	return nil
}
