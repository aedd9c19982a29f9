// Package fixtures provides test data factories for the PetzAdopt API.
//
// Factories insert users, pets, adoption requests, campaigns and payments
// with defaults that can be overridden through option functions:
//
//	f := fixtures.New(tdb.DB)
//	admin := f.CreateAdmin(t)
//	pet := f.CreatePet(t, admin, func(o *fixtures.PetOpts) { o.Category = "cat" })
package fixtures
