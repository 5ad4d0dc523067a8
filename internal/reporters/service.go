// Package reporters manages admin and reporter accounts: registration,
// login, approval and the press card.
package reporters

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bilgisen/ujala/internal/apperr"
	"github.com/bilgisen/ujala/internal/auth"
	"github.com/bilgisen/ujala/internal/logger"
	"github.com/bilgisen/ujala/internal/media"
	"github.com/bilgisen/ujala/internal/models"
	"github.com/bilgisen/ujala/internal/repository"
	"github.com/go-playground/validator/v10"
)

const (
	DefaultRoleLabel = "Reporter"
	superAdminName   = "Super Admin"
)

// SuperAdmin holds the configured superadmin credentials. Empty values disable the login.
type SuperAdmin struct {
	Email    string
	Password string
}

type RegisterInput struct {
	Name      string `json:"name" form:"name" validate:"required"`
	Email     string `json:"email" form:"email" validate:"required,email"`
	Password  string `json:"password" form:"password" validate:"required,max=72"`
	Region    string `json:"region" form:"region"`
	PressRole string `json:"pressRole" form:"pressRole"`
}

type Credentials struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// Session is a successful login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Name      string    `json:"name"`
}

// Profile is a user with a resolved avatar URL.
type Profile struct {
	*models.User
	Avatar string `json:"avatar"`
}

// Card is the press card of an approved reporter.
type Card struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Avatar     string     `json:"avatar"`
	ApprovedAt *time.Time `json:"approvedAt"`
	ValidUntil time.Time  `json:"validUntil"`
	RoleLabel  string     `json:"roleLabel"`
	Region     string     `json:"region"`
}

type Service struct {
	users    repository.UserRepository
	media    *media.Resolver
	tokens   auth.TokenService
	super    SuperAdmin
	origin   string
	validate *validator.Validate
	now      func() time.Time
}

// NewService wires the account service. origin prefixes relative avatar
// URLs and may be empty.
func NewService(users repository.UserRepository, resolver *media.Resolver, tokens auth.TokenService, super SuperAdmin, origin string) *Service {
	return &Service{
		users:    users,
		media:    resolver,
		tokens:   tokens,
		super:    super,
		origin:   strings.TrimRight(origin, "/"),
		validate: validator.New(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) check(v any) error {
	if err := s.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return apperr.Validation("Missing fields")
		}
		return fmt.Errorf("validate input: %w", err)
	}
	return nil
}

func (s *Service) newUser(in RegisterInput, role string) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.check(in); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	return &models.User{
		Name:      in.Name,
		Email:     in.Email,
		Password:  hash,
		Role:      role,
		Region:    strings.TrimSpace(in.Region),
		PressRole: strings.TrimSpace(in.PressRole),
	}, nil
}

func (s *Service) insert(ctx context.Context, u *models.User) error {
	if err := s.users.Insert(ctx, u); err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			return apperr.Conflict("User already exists", err)
		}
		return err
	}
	return nil
}

// RegisterAdmin creates an approved admin account.
func (s *Service) RegisterAdmin(ctx context.Context, in RegisterInput) (*models.User, error) {
	u, err := s.newUser(in, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	u.IsApproved = true
	if err := s.insert(ctx, u); err != nil {
		return nil, err
	}
	logger.Get().Info().Str("id", u.ID.Hex()).Str("email", u.Email).Msg("Admin registered")
	return u, nil
}

// RegisterReporter creates a reporter account pending approval. A failed
// avatar upload does not block registration.
func (s *Service) RegisterReporter(ctx context.Context, in RegisterInput, avatar *media.Upload) (*models.User, error) {
	u, err := s.newUser(in, models.RoleReporter)
	if err != nil {
		return nil, err
	}
	if u.ReporterID, err = uniqueID(ctx, prefixRegistered, s.now, s.reporterIDTaken); err != nil {
		return nil, err
	}

	if avatar != nil && len(avatar.Data) > 0 {
		ref, err := s.media.Attach(ctx, *avatar)
		if err != nil {
			logger.Get().Warn().Err(err).Str("email", u.Email).Msg("Failed to store reporter avatar")
		} else {
			u.Avatar = ref
		}
	}

	if err := s.insert(ctx, u); err != nil {
		if !u.Avatar.IsZero() {
			_ = s.media.Remove(ctx, u.Avatar)
		}
		return nil, err
	}
	logger.Get().Info().
		Str("id", u.ID.Hex()).
		Str("reporter_id", u.ReporterID).
		Msg("Reporter registered")
	return u, nil
}

func (s *Service) issue(id, email, role, name string) (Session, error) {
	token, exp, err := s.tokens.Sign(id, email, role, name)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, ExpiresAt: exp, ID: id, Role: role, Name: name}, nil
}

// Login authenticates a stored account. Reporters must be approved first.
func (s *Service) Login(ctx context.Context, c Credentials) (Session, error) {
	if err := s.check(c); err != nil {
		return Session{}, err
	}
	u, err := s.users.FindByEmail(ctx, c.Email)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return Session{}, apperr.Unauthorized("Invalid credentials")
		}
		return Session{}, err
	}
	ok, err := auth.CheckPassword(u.Password, c.Password)
	if err != nil {
		logger.Get().Warn().Err(err).Str("id", u.ID.Hex()).Msg("Stored password hash is unusable")
	}
	if !ok {
		return Session{}, apperr.Unauthorized("Invalid credentials")
	}
	if u.Role == models.RoleReporter && !u.IsApproved {
		return Session{}, apperr.Forbidden("Reporter account pending approval")
	}
	return s.issue(u.ID.Hex(), u.Email, u.Role, u.Name)
}

// SuperAdminLogin checks the configured superadmin credentials.
func (s *Service) SuperAdminLogin(c Credentials) (Session, error) {
	if s.super.Email == "" || s.super.Password == "" {
		return Session{}, apperr.Unauthorized("Invalid superadmin credentials")
	}
	emailOK := subtle.ConstantTimeCompare([]byte(c.Email), []byte(s.super.Email)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(c.Password), []byte(s.super.Password)) == 1
	if !emailOK || !passOK {
		return Session{}, apperr.Unauthorized("Invalid superadmin credentials")
	}
	return s.issue(auth.SuperAdminID, c.Email, models.RoleSuperAdmin, superAdminName)
}

func (s *Service) avatarURL(ref models.MediaRef) string {
	u := s.media.Display(ref)
	if strings.HasPrefix(u, "/") && s.origin != "" {
		return s.origin + u
	}
	return u
}

func (s *Service) profile(u *models.User) Profile {
	return Profile{User: u, Avatar: s.avatarURL(u.Avatar)}
}

// Me returns the stored account behind a token.
func (s *Service) Me(ctx context.Context, id string) (Profile, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if apperr.Is(err, apperr.KindInvalidID) {
			return Profile{}, apperr.NotFound("User not found")
		}
		return Profile{}, err
	}
	return s.profile(u), nil
}

func (s *Service) ListReporters(ctx context.Context) ([]Profile, error) {
	users, err := s.users.List(ctx, models.RoleReporter)
	if err != nil {
		return nil, err
	}
	out := make([]Profile, 0, len(users))
	for _, u := range users {
		out = append(out, s.profile(u))
	}
	return out, nil
}

func (s *Service) reporter(ctx context.Context, id string) (*models.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.NotFound("Reporter not found")
		}
		return nil, err
	}
	if u.Role != models.RoleReporter {
		return nil, apperr.Validation("Not a reporter account")
	}
	return u, nil
}

// Approve marks a reporter approved. approvedAt is only set the first time
// and a missing reporter id is backfilled.
func (s *Service) Approve(ctx context.Context, id string) (*models.User, error) {
	u, err := s.reporter(ctx, id)
	if err != nil {
		return nil, err
	}
	u.IsApproved = true
	if u.ApprovedAt == nil {
		now := s.now()
		u.ApprovedAt = &now
	}
	if u.ReporterID == "" {
		if u.ReporterID, err = uniqueID(ctx, prefixBackfilled, s.now, s.reporterIDTaken); err != nil {
			return nil, err
		}
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	logger.Get().Info().Str("id", u.ID.Hex()).Str("reporter_id", u.ReporterID).Msg("Reporter approved")
	return u, nil
}

// Delete removes a reporter account and, best effort, its avatar.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.reporter(ctx, id); err != nil {
		return err
	}
	u, err := s.users.DeleteByID(ctx, id)
	if err != nil {
		return err
	}
	if !u.Avatar.IsZero() {
		if err := s.media.Remove(ctx, u.Avatar); err != nil {
			logger.Get().Warn().Err(err).Str("id", u.ID.Hex()).Msg("Failed to remove reporter avatar")
		}
	}
	return nil
}

// PressCard returns the card of an approved reporter. It is valid for one
// year from approval, or from registration when approval time is unknown.
func (s *Service) PressCard(ctx context.Context, id string) (Card, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return Card{}, apperr.NotFound("Reporter not found")
		}
		return Card{}, err
	}
	if u.Role != models.RoleReporter {
		return Card{}, apperr.NotFound("Reporter not found")
	}
	if !u.IsApproved {
		return Card{}, apperr.Forbidden("Reporter not approved yet")
	}

	base := u.CreatedAt
	if u.ApprovedAt != nil {
		base = *u.ApprovedAt
	}
	if base.IsZero() {
		base = s.now()
	}
	label := strings.TrimSpace(u.PressRole)
	if label == "" {
		label = DefaultRoleLabel
	}
	return Card{
		ID:         u.ReporterID,
		Name:       u.Name,
		Avatar:     s.avatarURL(u.Avatar),
		ApprovedAt: u.ApprovedAt,
		ValidUntil: base.AddDate(1, 0, 0),
		RoleLabel:  label,
		Region:     u.Region,
	}, nil
}
