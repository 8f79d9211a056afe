package errors

import (
	"testing"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "family.csv", false},
		{"valid nested", "data/2024/family.csv", false},
		{"valid absolute", "/home/me/family.csv", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 600)), true},
		{"path traversal", "../../../etc/passwd", true},
		{"path traversal middle", "foo/../bar", true},
		{"null byte", "foo\x00bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidatePath(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://docs.google.com/spreadsheets/d/x/export?format=csv", false},
		{"http", "http://localhost:8080/sheet.csv", false},

		{"empty", "", true},
		{"ftp", "ftp://example.com", true},
		{"file", "file:///etc/passwd", true},
		{"javascript", "javascript:alert(1)", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateStateString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"plain", "eyJuIjpudWxsfQ", false},
		{"with hash", "#eyJuIjpudWxsfQ", false},
		{"url alphabet", "ab-_09", false},

		{"empty", "", true},
		{"only hash", "#", true},
		{"padding", "eyJuIjpudWxsfQ==", true},
		{"std alphabet", "ab+/", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStateString(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStateString(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidState) {
				t.Errorf("ValidateStateString(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateColumn(t *testing.T) {
	for _, col := range []int{1, 7, 13} {
		if err := ValidateColumn(col, 13); err != nil {
			t.Errorf("ValidateColumn(%d) error = %v", col, err)
		}
	}
	for _, col := range []int{0, -1, 14} {
		if err := ValidateColumn(col, 13); err == nil {
			t.Errorf("ValidateColumn(%d) expected error", col)
		}
	}
}

func TestValidateMemberID(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"mem_0", false},
		{"mem_123", false},
		{"u_mem_0_mem_1", true},
		{"mem_", true},
		{"mem_x", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if err := ValidateMemberID(tt.input); (err != nil) != tt.wantErr {
				t.Errorf("ValidateMemberID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput,
		ErrCodeInvalidRow,
		ErrCodeInvalidFormat,
		ErrCodeInvalidState,
		ErrCodeInvalidPath,
		ErrCodeNotFound,
		ErrCodeNodeNotFound,
		ErrCodeFileNotFound,
		ErrCodeSessionNotFound,
		ErrCodeEmptyGraph,
		ErrCodeNetwork,
		ErrCodeTimeout,
		ErrCodeUploadFailed,
		ErrCodeInternal,
		ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
