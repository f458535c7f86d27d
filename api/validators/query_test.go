package validators

import (
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/firn-fr/dashboard-backend/pkg/errors"
)

func TestParseQueryInt(t *testing.T) {
	cases := []struct {
		name    string
		url     string
		want    int
		wantErr bool
	}{
		{name: "missing uses default", url: "/x", want: 10},
		{name: "valid value", url: "/x?limit=25", want: 25},
		{name: "non-numeric", url: "/x?limit=abc", wantErr: true},
		{name: "below min", url: "/x?limit=0", wantErr: true},
		{name: "above max", url: "/x?limit=51", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tc.url, nil)
			got, err := ParseQueryInt(r, "limit", 10, 1, 50)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				typed := pkgerrors.As(err)
				if typed == nil || typed.Code() != pkgerrors.CodeValidation {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %d, want %d", got, tc.want)
			}
		})
	}
}

func TestParseVendorID(t *testing.T) {
	cases := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{name: "absent is allowed", url: "/x", want: ""},
		{name: "numeric id", url: "/x?vendor_id=129870954875", want: "129870954875"},
		{name: "trimmed", url: "/x?vendor_id=%2042%20", want: "42"},
		{name: "gid rejected", url: "/x?vendor_id=gid://shopify/StaffMember/42", wantErr: true},
		{name: "letters rejected", url: "/x?vendor_id=abc", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tc.url, nil)
			got, err := ParseVendorID(r)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}
