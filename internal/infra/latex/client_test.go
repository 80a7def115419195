package latex

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCompile_ReturnsPDFBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("method = %s, want POST", r.Method)
		}
		w.Header().Set("Content-Type", "application/pdf")
		fmt.Fprint(w, "%PDF-1.5 fake")
	}))
	defer srv.Close()

	client := NewClient(Config{URL: srv.URL})
	pdf, err := client.Compile(context.Background(), `\documentclass{article}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(string(pdf), "%PDF") {
		t.Errorf("unexpected body: %q", pdf)
	}
}

func TestCompile_SurfacesCleanedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, "This is pdfTeX, Version 3.14\n"+
			"(./main.tex\nLaTeX2e <2023-11-01>\n"+
			"! Undefined control sequence.\n"+
			"l.12 \\badmacro\n"+
			"Output written on nothing.\n")
	}))
	defer srv.Close()

	client := NewClient(Config{URL: srv.URL})
	_, err := client.Compile(context.Background(), `\badmacro`)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "! Undefined control sequence.") {
		t.Errorf("error %q does not carry the compiler message", err)
	}
	if strings.Contains(err.Error(), "pdfTeX, Version") {
		t.Errorf("error %q still carries log noise", err)
	}
}

func TestCleanCompilerLog_NoErrorLines(t *testing.T) {
	log := "line1\nline2\nline3\nline4\nline5\nline6\nline7"
	got := CleanCompilerLog(log)
	if strings.Contains(got, "line1") {
		t.Errorf("expected only the log tail, got %q", got)
	}
	if !strings.Contains(got, "line7") {
		t.Errorf("expected the last line, got %q", got)
	}
}
