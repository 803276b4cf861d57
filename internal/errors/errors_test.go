package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestConfigErrors(t *testing.T) {
	notFound := &ErrConfigNotFound{Path: "/tmp/quota.yaml"}
	if !strings.Contains(notFound.Error(), "config file not found") {
		t.Fatalf("unexpected error message: %s", notFound.Error())
	}
	if !strings.Contains(notFound.Error(), notFound.Path) {
		t.Fatalf("expected path in error message: %s", notFound.Error())
	}

	base := errors.New("bad yaml")
	parse := &ErrConfigParse{Err: base}
	if !strings.Contains(parse.Error(), "failed to parse YAML") {
		t.Fatalf("unexpected parse message: %s", parse.Error())
	}
	if !errors.Is(parse, base) {
		t.Fatalf("expected unwrap to base error")
	}

	validation := &ErrConfigValidation{Err: base}
	if !strings.Contains(validation.Error(), "config validation failed") {
		t.Fatalf("unexpected validation message: %s", validation.Error())
	}
	if !errors.Is(validation, base) {
		t.Fatalf("expected unwrap to base error")
	}
}

func TestFetchErrors(t *testing.T) {
	base := errors.New("dial tcp: connection refused")

	network := &ErrNetwork{Endpoint: "daily_usage", Err: base}
	if !strings.Contains(network.Error(), "request to daily_usage failed") {
		t.Fatalf("unexpected network message: %s", network.Error())
	}
	if !errors.Is(network, base) {
		t.Fatalf("expected unwrap to base error")
	}

	rejected := &ErrRemoteRejected{Endpoint: "balance", StatusCode: 401}
	if rejected.Error() != "balance returned status 401" {
		t.Fatalf("unexpected rejected message: %s", rejected.Error())
	}

	decode := &ErrDecode{Endpoint: "balance", Err: base}
	if !strings.Contains(decode.Error(), "failed to decode balance response") {
		t.Fatalf("unexpected decode message: %s", decode.Error())
	}
	var target *ErrDecode
	if !errors.As(error(decode), &target) || target.Endpoint != "balance" {
		t.Fatalf("expected errors.As to match ErrDecode")
	}
}

func TestOtherErrors(t *testing.T) {
	base := errors.New("boom")

	read := &ErrFileRead{Path: "/tmp/api_key", Err: base}
	if !strings.Contains(read.Error(), "failed to read file /tmp/api_key") {
		t.Fatalf("unexpected read message: %s", read.Error())
	}
	if !errors.Is(read, base) {
		t.Fatalf("expected unwrap to base error")
	}

	start := &ErrServerStart{Addr: ":9464", Err: base}
	if !strings.Contains(start.Error(), "failed to start server") {
		t.Fatalf("unexpected server start message: %s", start.Error())
	}
	if !errors.Is(start, base) {
		t.Fatalf("expected unwrap to base error")
	}
}
