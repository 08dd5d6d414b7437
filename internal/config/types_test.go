package config

import (
	"errors"
	"testing"
)

func TestValidateChunkSize(t *testing.T) {
	tests := []struct {
		name      string
		chunkSize int
		wantErr   bool
	}{
		{"negative is rejected", -1, true},
		{"zero selects the default", 0, false},
		{"positive is accepted", 4096, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Archive.ChunkSize = tt.chunkSize

			err := cfg.Validate()
			if tt.wantErr {
				var validation *ValidationError
				if !errors.As(err, &validation) {
					t.Fatalf("Validate() error = %v, want *ValidationError", err)
				}
				if validation.Field != "archive.chunk_size" {
					t.Errorf("field = %q, want archive.chunk_size", validation.Field)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() error = %v, want nil", err)
			}
		})
	}
}
