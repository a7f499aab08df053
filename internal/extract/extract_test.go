package extract

import (
	"errors"
	"testing"

	"github.com/jobgenie/jobgenie/internal/domain"
)

func TestText_PlainText(t *testing.T) {
	content := "5 years of React and Node.js experience"

	got, err := Text("resume.txt", []byte(content))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != content {
		t.Errorf("Text = %q, want %q", got, content)
	}
}

func TestText_NoExtensionTreatedAsPlain(t *testing.T) {
	got, err := Text("resume", []byte("backend engineer"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "backend engineer" {
		t.Errorf("Text = %q", got)
	}
}

func TestText_BinaryGarbageRejected(t *testing.T) {
	// Invalid UTF-8 with no known extension is not a resume we can read.
	_, err := Text("resume.bin", []byte{0xff, 0xfe, 0x00, 0x81})
	if !errors.Is(err, domain.ErrUnsupportedFile) {
		t.Fatalf("expected ErrUnsupportedFile, got %v", err)
	}
}

func TestText_CorruptPDF(t *testing.T) {
	_, err := Text("resume.pdf", []byte("not a pdf at all"))
	if err == nil {
		t.Fatal("expected error for corrupt pdf")
	}
}

func TestText_CorruptDocx(t *testing.T) {
	_, err := Text("resume.docx", []byte("not a docx at all"))
	if err == nil {
		t.Fatal("expected error for corrupt docx")
	}
}

func TestText_EmptyFile(t *testing.T) {
	got, err := Text("resume.txt", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("Text = %q, want empty", got)
	}
}
