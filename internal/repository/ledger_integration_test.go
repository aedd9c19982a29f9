package repository_test

import (
	"context"
	"testing"

	"github.com/forgo/petzadopt/internal/database"
	"github.com/forgo/petzadopt/internal/model"
	"github.com/forgo/petzadopt/internal/repository"
	"github.com/forgo/petzadopt/internal/testing/fixtures"
	"github.com/forgo/petzadopt/internal/testing/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_InsertDonationGuardsVersion(t *testing.T) {
	tdb := testdb.New(t)
	defer tdb.Close()

	f := fixtures.New(tdb.DB)
	repo := repository.NewLedgerRepository(tdb.DB)
	ctx := context.Background()

	owner := f.CreateUser(t)
	campaign := f.CreateCampaign(t, owner)

	write := model.LedgerWrite{
		CampaignID:      campaign.ID,
		ExpectedVersion: campaign.Version,
		NewTotal:        model.MustParseAmount("50.00"),
	}
	updated, payment, err := repo.InsertDonation(ctx, write, &model.Payment{
		Email:        "donor@test.local",
		Amount:       model.MustParseAmount("50.00"),
		ProcessorRef: "pi_first",
	})
	require.NoError(t, err)
	assert.Equal(t, "50.00", updated.DonatedAmount.String())
	assert.Equal(t, campaign.Version+1, updated.Version)
	assert.Equal(t, campaign.ID, payment.CampaignID)

	// Same expected version again: the campaign moved on, nothing is written.
	_, _, err = repo.InsertDonation(ctx, write, &model.Payment{
		Email:        "donor@test.local",
		Amount:       model.MustParseAmount("50.00"),
		ProcessorRef: "pi_second",
	})
	require.ErrorIs(t, err, database.ErrConflict)

	payments, err := repo.ListPaymentsByCampaign(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 1)

	current, err := repo.GetCampaign(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, "50.00", current.DonatedAmount.String())
}

func TestLedger_DuplicateProcessorRef(t *testing.T) {
	tdb := testdb.New(t)
	defer tdb.Close()

	f := fixtures.New(tdb.DB)
	repo := repository.NewLedgerRepository(tdb.DB)
	ctx := context.Background()

	campaign := f.CreateCampaign(t, f.CreateUser(t))
	first := f.Donate(t, campaign, "donor@test.local", "10.00")

	_, _, err := repo.InsertDonation(ctx, model.LedgerWrite{
		CampaignID:      campaign.ID,
		ExpectedVersion: campaign.Version,
		NewTotal:        campaign.DonatedAmount.Add(model.MustParseAmount("10.00")),
	}, &model.Payment{
		Email:        "donor@test.local",
		Amount:       model.MustParseAmount("10.00"),
		ProcessorRef: first.ProcessorRef,
	})
	require.ErrorIs(t, err, database.ErrDuplicate)

	current, err := repo.GetCampaign(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, "10.00", current.DonatedAmount.String())
}

func TestLedger_DeletePaymentWithTotal(t *testing.T) {
	tdb := testdb.New(t)
	defer tdb.Close()

	f := fixtures.New(tdb.DB)
	repo := repository.NewLedgerRepository(tdb.DB)
	ctx := context.Background()

	campaign := f.CreateCampaign(t, f.CreateUser(t))
	payment := f.Donate(t, campaign, "donor@test.local", "30.00")

	err := repo.DeletePayment(ctx, payment.ID, &model.LedgerWrite{
		CampaignID:      campaign.ID,
		ExpectedVersion: campaign.Version,
		NewTotal:        model.ZeroAmount,
	})
	require.NoError(t, err)

	gone, err := repo.GetPayment(ctx, payment.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	// A second delete of the same payment is a conflict, not a double decrement.
	err = repo.DeletePayment(ctx, payment.ID, nil)
	assert.ErrorIs(t, err, database.ErrConflict)
}

func TestLedger_DonationsOmitDeletedCampaigns(t *testing.T) {
	tdb := testdb.New(t)
	defer tdb.Close()

	f := fixtures.New(tdb.DB)
	repo := repository.NewLedgerRepository(tdb.DB)
	campaigns := repository.NewCampaignRepository(tdb.DB)
	ctx := context.Background()

	owner := f.CreateUser(t)
	kept := f.CreateCampaign(t, owner)
	dropped := f.CreateCampaign(t, owner)
	f.Donate(t, kept, "donor@test.local", "5.00")
	f.Donate(t, dropped, "donor@test.local", "7.00")

	require.NoError(t, campaigns.Delete(ctx, dropped.ID))

	views, err := repo.ListDonationsByEmail(ctx, "donor@test.local")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, kept.ID, views[0].CampaignID)
	assert.Equal(t, kept.PetName, views[0].PetName)
	assert.Equal(t, "5.00", views[0].DonatedAmount.String())
}

func TestAdoption_AcceptOnlyOnce(t *testing.T) {
	tdb := testdb.New(t)
	defer tdb.Close()

	f := fixtures.New(tdb.DB)
	adoptions := repository.NewAdoptionRepository(tdb.DB)
	pets := repository.NewPetRepository(tdb.DB)
	ctx := context.Background()

	owner := f.CreateUser(t)
	pet := f.CreatePet(t, owner)
	req := f.RequestAdoption(t, pet, "adopter@test.local")

	accepted, err := adoptions.Accept(ctx, req.ID, pet.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AdoptionStatusAdopted, accepted.Status)

	stored, err := pets.GetByID(ctx, pet.ID)
	require.NoError(t, err)
	assert.True(t, stored.Adopted)

	_, err = adoptions.Accept(ctx, req.ID, pet.ID)
	assert.ErrorIs(t, err, database.ErrConflict)
}

func TestAdoption_DuplicateRequest(t *testing.T) {
	tdb := testdb.New(t)
	defer tdb.Close()

	f := fixtures.New(tdb.DB)
	adoptions := repository.NewAdoptionRepository(tdb.DB)

	pet := f.CreatePet(t, f.CreateUser(t))
	f.RequestAdoption(t, pet, "adopter@test.local")

	err := adoptions.Create(context.Background(), &model.AdoptionRequest{
		Email:      "adopter@test.local",
		PetID:      pet.ID,
		OwnerEmail: pet.AdderEmail,
	})
	assert.ErrorIs(t, err, database.ErrDuplicate)
}

func TestUser_UniqueEmail(t *testing.T) {
	tdb := testdb.New(t)
	defer tdb.Close()

	f := fixtures.New(tdb.DB)
	users := repository.NewUserRepository(tdb.DB)
	existing := f.CreateUser(t)

	err := users.Create(context.Background(), &model.User{Email: existing.Email})
	assert.ErrorIs(t, err, database.ErrDuplicate)

	got, err := users.SetStatus(context.Background(), existing.Email, model.UserStatusRequested)
	require.NoError(t, err)
	assert.True(t, got.HasPendingUpgrade())

	missing, err := users.SetStatus(context.Background(), "nobody@test.local", model.UserStatusRequested)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
