// Package helpers provides test utility functions for the PetzAdopt API.
//
// # JWT Helpers
//
// Mint tokens with the same service the verifier under test uses:
//
//	jwtHelper := helpers.NewJWTHelper(t)
//	guard := service.NewGuard(service.GuardConfig{JWTService: jwtHelper.Service(), Users: users})
//	token := jwtHelper.GenerateToken(t, "ann@example.com")
//
// # Request Helpers
//
//	req := helpers.NewRequest(t, http.MethodPost, "/v1/payments").
//	    WithAuth(jwtHelper, "ann@example.com").
//	    WithBody(body).
//	    Build()
//
// # Assertion Helpers
//
//	helpers.AssertProblemDetails(t, rr, http.StatusForbidden, model.ErrCodeForbidden)
//	helpers.AssertRecordExists(t, db, "campaign", campaignID)
package helpers
