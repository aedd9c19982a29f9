package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func hasFieldError(errs []FieldError, field string) bool {
	for _, e := range errs {
		if e.Field == field {
			return true
		}
	}
	return false
}

func strPtr(s string) *string { return &s }

// ============================================================================
// IsValidEmail Tests
// ============================================================================

func TestIsValidEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{"ann@example.com", true},
		{"a.b+tag@sub.example.org", true},
		{"", false},
		{"nope", false},
		{"Ann <ann@example.com>", false},
		{"ann @example.com", false},
		{"ann@example.com, bob@example.com", false},
	}

	for _, tt := range tests {
		if got := IsValidEmail(tt.in); got != tt.want {
			t.Errorf("IsValidEmail(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// ============================================================================
// Amount Tests
// ============================================================================

func TestParseAmount(t *testing.T) {
	t.Parallel()

	valid := map[string]string{
		"10":     "10.00",
		"10.5":   "10.50",
		" 0.01 ": "0.01",
		"75.50":  "75.50",
		"-3":     "-3.00",
	}
	for in, want := range valid {
		a, err := ParseAmount(in)
		if err != nil {
			t.Errorf("ParseAmount(%q) unexpected error: %v", in, err)
			continue
		}
		if a.String() != want {
			t.Errorf("ParseAmount(%q) = %s, want %s", in, a, want)
		}
	}

	if _, err := ParseAmount(""); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("blank amount: expected ErrInvalidAmount, got %v", err)
	}
	if _, err := ParseAmount("ten"); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("non-numeric amount: expected ErrInvalidAmount, got %v", err)
	}
	if _, err := ParseAmount("1.005"); !errors.Is(err, ErrAmountPrecision) {
		t.Errorf("three decimals: expected ErrAmountPrecision, got %v", err)
	}
}

func TestParseAmount_Range(t *testing.T) {
	t.Parallel()

	// 92233720368547758.07 is math.MaxInt64 cents
	for _, in := range []string{"92233720368547758.07", "-92233720368547758.07"} {
		a, err := ParseAmount(in)
		if err != nil {
			t.Errorf("ParseAmount(%q) unexpected error: %v", in, err)
			continue
		}
		if _, ok := a.MinorUnits(); !ok {
			t.Errorf("%s should fit in minor units", in)
		}
	}

	for _, in := range []string{"1e20", "92233720368547758.08", "-1e20"} {
		if _, err := ParseAmount(in); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("ParseAmount(%q): expected ErrInvalidAmount, got %v", in, err)
		}
	}

	ceiling := MustParseAmount("92233720368547758.07")
	if cents, ok := ceiling.Add(MustParseAmount("0.01")).MinorUnits(); ok {
		t.Errorf("overflowing sum reported %d cents", cents)
	}
}

func TestAmount_ExactArithmetic(t *testing.T) {
	t.Parallel()

	// 0.1 + 0.2 is the classic float trap
	sum := MustParseAmount("0.10").Add(MustParseAmount("0.20"))
	if !sum.Equal(MustParseAmount("0.30")) {
		t.Errorf("expected 0.30, got %s", sum)
	}
	if got, ok := MustParseAmount("12.34").MinorUnits(); !ok || got != 1234 {
		t.Errorf("expected 1234 minor units, got %d (ok=%v)", got, ok)
	}
	if got := AmountFromMinorUnits(505).String(); got != "5.05" {
		t.Errorf("expected 5.05, got %s", got)
	}
	if !MustParseAmount("1").Sub(MustParseAmount("2")).IsNegative() {
		t.Error("expected negative difference")
	}
}

func TestAmount_JSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(struct {
		A Amount `json:"a"`
	}{MustParseAmount("7.5")})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"a":"7.50"}` {
		t.Errorf("unexpected encoding %s", data)
	}

	// Stored documents may carry bare numbers with float noise
	for _, raw := range []string{`"12.30"`, `12.3`, `12.300000000000001`} {
		var a Amount
		if err := json.Unmarshal([]byte(raw), &a); err != nil {
			t.Errorf("unmarshal %s: %v", raw, err)
			continue
		}
		if a.String() != "12.30" {
			t.Errorf("unmarshal %s = %s, want 12.30", raw, a)
		}
	}

	var a Amount
	if err := json.Unmarshal([]byte(`"abc"`), &a); err == nil {
		t.Error("expected error for non-numeric amount")
	}
}

// ============================================================================
// Pet Request Tests
// ============================================================================

func validPet() *CreatePetRequest {
	return &CreatePetRequest{
		PetName:          "Biscuit",
		PetAge:           3,
		PetImage:         "https://img.test/biscuit.jpg",
		Category:         "dog",
		PetLocation:      "Dhaka",
		ShortDescription: "Loves fetch",
	}
}

func TestCreatePetRequest_Validate_Valid(t *testing.T) {
	t.Parallel()

	if errs := validPet().Validate(); len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
}

func TestCreatePetRequest_Validate_Fields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(r *CreatePetRequest)
		field  string
	}{
		{"missing name", func(r *CreatePetRequest) { r.PetName = "  " }, "pet_name"},
		{"name too long", func(r *CreatePetRequest) { r.PetName = strings.Repeat("a", MaxNameLength+1) }, "pet_name"},
		{"missing category", func(r *CreatePetRequest) { r.Category = "" }, "category"},
		{"missing image", func(r *CreatePetRequest) { r.PetImage = "" }, "pet_image"},
		{"missing location", func(r *CreatePetRequest) { r.PetLocation = "" }, "pet_location"},
		{"missing short description", func(r *CreatePetRequest) { r.ShortDescription = "" }, "short_description"},
		{"long description too long", func(r *CreatePetRequest) {
			r.LongDescription = strings.Repeat("a", MaxLongDescriptionLength+1)
		}, "long_description"},
		{"negative age", func(r *CreatePetRequest) { r.PetAge = -1 }, "pet_age"},
	}

	for _, tt := range tests {
		req := validPet()
		tt.mutate(req)
		if errs := req.Validate(); !hasFieldError(errs, tt.field) {
			t.Errorf("%s: expected %s error, got %v", tt.name, tt.field, errs)
		}
	}
}

func TestUpdatePetRequest_Validate(t *testing.T) {
	t.Parallel()

	empty := &UpdatePetRequest{}
	if !hasFieldError(empty.Validate(), "body") {
		t.Error("expected body error for empty update")
	}

	blank := &UpdatePetRequest{PetName: strPtr("")}
	if !hasFieldError(blank.Validate(), "pet_name") {
		t.Error("expected pet_name error for blank name")
	}

	age := -2
	if !hasFieldError((&UpdatePetRequest{PetAge: &age}).Validate(), "pet_age") {
		t.Error("expected pet_age error for negative age")
	}

	ok := &UpdatePetRequest{PetLocation: strPtr("Chittagong")}
	if errs := ok.Validate(); len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
}

// ============================================================================
// Campaign Request Tests
// ============================================================================

func validCampaign() *CreateCampaignRequest {
	return &CreateCampaignRequest{
		PetName:          "Biscuit",
		PetImage:         "https://img.test/biscuit.jpg",
		MaxDonation:      "500.00",
		LastDate:         "2026-12-31",
		ShortDescription: "Surgery fund",
	}
}

func TestCreateCampaignRequest_Validate_Valid(t *testing.T) {
	t.Parallel()

	if errs := validCampaign().Validate(); len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
}

func TestCreateCampaignRequest_Validate_MaxDonation(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "abc", "0", "-5", "10.001"} {
		req := validCampaign()
		req.MaxDonation = raw
		if !hasFieldError(req.Validate(), "max_donation") {
			t.Errorf("max_donation %q: expected error", raw)
		}
	}
}

func TestCreateCampaignRequest_Validate_RequiredFields(t *testing.T) {
	t.Parallel()

	errs := (&CreateCampaignRequest{MaxDonation: "10"}).Validate()
	for _, field := range []string{"pet_name", "pet_image", "last_date", "short_description"} {
		if !hasFieldError(errs, field) {
			t.Errorf("expected %s error, got %v", field, errs)
		}
	}
}

func TestUpdateCampaignRequest_Validate(t *testing.T) {
	t.Parallel()

	if !hasFieldError((&UpdateCampaignRequest{}).Validate(), "body") {
		t.Error("expected body error for empty update")
	}
	if !hasFieldError((&UpdateCampaignRequest{MaxDonation: strPtr("0")}).Validate(), "max_donation") {
		t.Error("expected max_donation error for zero cap")
	}
	if errs := (&UpdateCampaignRequest{LastDate: strPtr("2027-01-01")}).Validate(); len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
}

// ============================================================================
// Adoption, Payment and User Request Tests
// ============================================================================

func TestCreateAdoptionRequest_Validate(t *testing.T) {
	t.Parallel()

	errs := (&CreateAdoptionRequest{}).Validate()
	for _, field := range []string{"pet_id", "name", "phone", "address"} {
		if !hasFieldError(errs, field) {
			t.Errorf("expected %s error, got %v", field, errs)
		}
	}

	ok := &CreateAdoptionRequest{PetID: "pet:1", Name: "Ann", Phone: "+8801700000000", Address: "12 Lake Rd"}
	if errs := ok.Validate(); len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
}

func TestCreatePaymentRequest_Validate(t *testing.T) {
	t.Parallel()

	errs := (&CreatePaymentRequest{}).Validate()
	for _, field := range []string{"campaign_id", "amount", "transaction_id"} {
		if !hasFieldError(errs, field) {
			t.Errorf("expected %s error, got %v", field, errs)
		}
	}
}

func TestUpsertUserRequest_Validate(t *testing.T) {
	t.Parallel()

	if !hasFieldError((&UpsertUserRequest{Email: "nope"}).Validate(), "email") {
		t.Error("expected email error")
	}
	if !hasFieldError((&UpsertUserRequest{Email: "ann@example.com", Status: "Approved"}).Validate(), "status") {
		t.Error("expected status error for unknown status")
	}
	for _, status := range []UserStatus{"", UserStatusNone, UserStatusRequested} {
		if errs := (&UpsertUserRequest{Email: "ann@example.com", Status: status}).Validate(); len(errs) != 0 {
			t.Errorf("status %q: expected no errors, got %v", status, errs)
		}
	}
}
