// Package seed loads development fixtures from a YAML document such as
// seeds/dev.yaml:
//
//	users:
//	  - email: admin@petzadopt.dev
//	    admin: true
//	pets:
//	  - adder: admin@petzadopt.dev
//	    pet_name: Biscuit
//	    pet_age: 3
//	    pet_image: https://img.petzadopt.dev/biscuit.jpg
//	    category: dog
//	    pet_location: Dhaka
//	    short_description: Loves fetch
//	campaigns:
//	  - adder: admin@petzadopt.dev
//	    pet_name: Biscuit
//	    pet_image: https://img.petzadopt.dev/biscuit.jpg
//	    max_donation: "500.00"
//	    last_date: "2026-12-31"
//	    short_description: Surgery fund
//
// Pets and campaigns are created through the services, so every listing rule
// applies and campaigns always start with nothing donated.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/forgo/petzadopt/internal/model"
)

// Document is the seed file layout
type Document struct {
	Users     []User     `yaml:"users"`
	Pets      []Pet      `yaml:"pets"`
	Campaigns []Campaign `yaml:"campaigns"`
}

// User is a seeded account. Admin grants the admin role.
type User struct {
	Email string `yaml:"email"`
	Name  string `yaml:"name"`
	Photo string `yaml:"photo"`
	Admin bool   `yaml:"admin"`
}

// Pet is a seeded listing owned by Adder
type Pet struct {
	Adder            string `yaml:"adder"`
	PetName          string `yaml:"pet_name"`
	PetAge           int    `yaml:"pet_age"`
	PetImage         string `yaml:"pet_image"`
	Category         string `yaml:"category"`
	PetLocation      string `yaml:"pet_location"`
	ShortDescription string `yaml:"short_description"`
	LongDescription  string `yaml:"long_description"`
}

// Campaign is a seeded fundraiser owned by Adder
type Campaign struct {
	Adder            string `yaml:"adder"`
	PetName          string `yaml:"pet_name"`
	PetImage         string `yaml:"pet_image"`
	MaxDonation      string `yaml:"max_donation"`
	LastDate         string `yaml:"last_date"`
	ShortDescription string `yaml:"short_description"`
	LongDescription  string `yaml:"long_description"`
}

func (p Pet) request() *model.CreatePetRequest {
	return &model.CreatePetRequest{
		PetName:          p.PetName,
		PetAge:           p.PetAge,
		PetImage:         p.PetImage,
		Category:         p.Category,
		PetLocation:      p.PetLocation,
		ShortDescription: p.ShortDescription,
		LongDescription:  p.LongDescription,
	}
}

func (c Campaign) request() *model.CreateCampaignRequest {
	return &model.CreateCampaignRequest{
		PetName:          c.PetName,
		PetImage:         c.PetImage,
		MaxDonation:      c.MaxDonation,
		LastDate:         c.LastDate,
		ShortDescription: c.ShortDescription,
		LongDescription:  c.LongDescription,
	}
}

// Parse decodes a seed document. Unknown keys are rejected.
func Parse(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &doc, nil
		}
		return nil, fmt.Errorf("decode seed document: %w", err)
	}
	return &doc, nil
}

// ParseFile reads and validates the seed document at path
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := Parse(f)
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Validate checks every record and reports all problems at once
func (d *Document) Validate() error {
	var errs []error

	for i, u := range d.Users {
		if !model.IsValidEmail(u.Email) {
			errs = append(errs, fmt.Errorf("users[%d]: invalid email %q", i, u.Email))
		}
	}
	for i, p := range d.Pets {
		if !model.IsValidEmail(p.Adder) {
			errs = append(errs, fmt.Errorf("pets[%d]: invalid adder %q", i, p.Adder))
		}
		for _, fe := range p.request().Validate() {
			errs = append(errs, fmt.Errorf("pets[%d].%s: %s", i, fe.Field, fe.Message))
		}
	}
	for i, c := range d.Campaigns {
		if !model.IsValidEmail(c.Adder) {
			errs = append(errs, fmt.Errorf("campaigns[%d]: invalid adder %q", i, c.Adder))
		}
		for _, fe := range c.request().Validate() {
			errs = append(errs, fmt.Errorf("campaigns[%d].%s: %s", i, fe.Field, fe.Message))
		}
	}

	return errors.Join(errs...)
}

// UserStore creates users and grants roles
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	SetRole(ctx context.Context, userID string, role model.UserRole) (*model.User, error)
}

// PetCreator lists a pet on behalf of an owner
type PetCreator interface {
	Create(ctx context.Context, callerEmail string, req *model.CreatePetRequest) (*model.Pet, error)
}

// CampaignCreator opens a campaign on behalf of an owner
type CampaignCreator interface {
	Create(ctx context.Context, callerEmail string, req *model.CreateCampaignRequest) (*model.Campaign, error)
}

// Loader writes a seed document through the application services
type Loader struct {
	users     UserStore
	pets      PetCreator
	campaigns CampaignCreator
	logger    *slog.Logger
}

// LoaderConfig holds the loader's dependencies
type LoaderConfig struct {
	Users     UserStore
	Pets      PetCreator
	Campaigns CampaignCreator
	Logger    *slog.Logger
}

// NewLoader creates a seed loader
func NewLoader(cfg LoaderConfig) *Loader {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Loader{
		users:     cfg.Users,
		pets:      cfg.Pets,
		campaigns: cfg.Campaigns,
		logger:    cfg.Logger,
	}
}

// Result counts what a load wrote
type Result struct {
	UsersCreated  int `json:"users_created"`
	UsersPromoted int `json:"users_promoted"`
	Pets          int `json:"pets"`
	Campaigns     int `json:"campaigns"`
}

// Load writes users first so listings can reference them. Existing users are
// kept; a seeded admin flag promotes them. Load stops at the first failure.
func (l *Loader) Load(ctx context.Context, doc *Document) (*Result, error) {
	res := &Result{}

	for _, u := range doc.Users {
		if err := l.loadUser(ctx, u, res); err != nil {
			return res, fmt.Errorf("user %s: %w", u.Email, err)
		}
	}

	for _, p := range doc.Pets {
		pet, err := l.pets.Create(ctx, p.Adder, p.request())
		if err != nil {
			return res, fmt.Errorf("pet %s: %w", p.PetName, err)
		}
		res.Pets++
		l.logger.DebugContext(ctx, "seeded pet", "pet_id", pet.ID, "adder", p.Adder)
	}

	for _, c := range doc.Campaigns {
		campaign, err := l.campaigns.Create(ctx, c.Adder, c.request())
		if err != nil {
			return res, fmt.Errorf("campaign %s: %w", c.PetName, err)
		}
		res.Campaigns++
		l.logger.DebugContext(ctx, "seeded campaign", "campaign_id", campaign.ID, "adder", c.Adder)
	}

	l.logger.InfoContext(ctx, "seed loaded",
		"users_created", res.UsersCreated,
		"users_promoted", res.UsersPromoted,
		"pets", res.Pets,
		"campaigns", res.Campaigns,
	)
	return res, nil
}

func (l *Loader) loadUser(ctx context.Context, u User, res *Result) error {
	existing, err := l.users.GetByEmail(ctx, u.Email)
	if err != nil {
		return err
	}

	if existing == nil {
		role := model.UserRoleUser
		if u.Admin {
			role = model.UserRoleAdmin
		}
		user := &model.User{
			Email:  u.Email,
			Name:   optional(u.Name),
			Photo:  optional(u.Photo),
			Role:   role,
			Status: model.UserStatusNone,
		}
		if err := l.users.Create(ctx, user); err != nil {
			return err
		}
		res.UsersCreated++
		return nil
	}

	if u.Admin && !existing.IsAdmin() {
		if _, err := l.users.SetRole(ctx, existing.ID, model.UserRoleAdmin); err != nil {
			return err
		}
		res.UsersPromoted++
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
