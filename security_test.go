package taxlots

import "testing"

func TestValidateISIN(t *testing.T) {
	testCases := []struct {
		isin    string
		wantErr bool
	}{
		{AAPL, false},
		{GOOG, false},
		{IWDA, false},
		{"US0378331006", true}, // bad check digit
		{"US037833100", true},  // too short
		{"us0378331005", true}, // lower case
	}
	for _, tc := range testCases {
		t.Run(tc.isin, func(t *testing.T) {
			if err := ValidateISIN(tc.isin); (err != nil) != tc.wantErr {
				t.Errorf("ValidateISIN(%q) error = %v, wantErr %v", tc.isin, err, tc.wantErr)
			}
		})
	}
}

func TestIssuerCountry(t *testing.T) {
	if got, err := IssuerCountry(IWDA); err != nil || got != "IE" {
		t.Errorf("IssuerCountry(%q) = %q, %v, want IE", IWDA, got, err)
	}
	if _, err := IssuerCountry("X"); err == nil {
		t.Error("IssuerCountry(\"X\") expected an error")
	}
}
