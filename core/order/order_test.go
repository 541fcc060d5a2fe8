package order

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

func TestParseMetadata(t *testing.T) {
	userID := "8a6d3c4e-6f3f-44d5-9c3e-0a4c2c0c2f11"
	jobID := "b1f0a4a2-9a42-4e54-90a1-7a74f8d4e29b"

	tests := []struct {
		name    string
		md      map[string]string
		want    Metadata
		wantErr bool
	}{
		{
			name: "complete",
			md:   map[string]string{"user_id": userID, "job_id": jobID},
			want: Metadata{UserID: userID, JobID: jobID},
		},
		{
			name: "job id is optional",
			md:   map[string]string{"user_id": userID},
			want: Metadata{UserID: userID},
		},
		{
			name:    "missing user id",
			md:      map[string]string{"job_id": jobID},
			wantErr: true,
		},
		{
			name:    "malformed user id",
			md:      map[string]string{"user_id": "not-a-uuid"},
			wantErr: true,
		},
		{
			name:    "malformed job id",
			md:      map[string]string{"user_id": userID, "job_id": "42"},
			wantErr: true,
		},
		{
			name:    "empty",
			md:      map[string]string{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMetadata(tt.md)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected an error, got metadata %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("unexpected metadata (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAmountFromMinor(t *testing.T) {
	tests := []struct {
		minor int64
		major string
	}{
		{4999, "49.99"},
		{100, "1"},
		{1, "0.01"},
		{0, "0"},
		{250050, "2500.5"},
	}

	for _, tt := range tests {
		want := decimal.RequireFromString(tt.major)
		if got := amountFromMinor(tt.minor); !got.Equal(want) {
			t.Errorf("amountFromMinor(%d) = %s, want %s", tt.minor, got, want)
		}
	}
}
