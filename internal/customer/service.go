package customer

import (
	"context"
	"errors"
	"strings"
	"time"

	"homefoods-be/internal/logger"
	"homefoods-be/internal/store"
	"homefoods-be/internal/validation"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

const minAddressLength = 10

type Service interface {
	Signup(ctx context.Context, in SignupInput) (*Session, error)
	// Login signs in by phone number alone; there is no OTP step.
	Login(ctx context.Context, phone string) (*Session, error)
	Profile(ctx context.Context, id string) (*Customer, error)
	UpdateProfile(ctx context.Context, id string, in ProfileInput) (*Customer, error)
}

// TokenIssuer is satisfied by *auth.Sessions.
type TokenIssuer interface {
	Issue(customerID, phone string) (string, time.Time, error)
}

type service struct {
	repo   Repository
	tokens TokenIssuer
	newID  func() string
}

func NewService(repo Repository, tokens TokenIssuer) Service {
	return &service{repo: repo, tokens: tokens, newID: NewID}
}

func NewID() string {
	return "cus_" + ulid.Make().String()
}

func (s *service) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	log := logger.FromCtx(ctx).With(zap.String("layer", "service"), zap.String("method", "Signup"))

	c, fieldErrs := validateSignup(in)
	if len(fieldErrs) > 0 {
		return nil, fieldErrs
	}

	if _, err := s.repo.FindByPhone(ctx, c.Phone); err == nil {
		log.Info("signup with registered phone")
		return nil, ErrPhoneTaken
	} else if !errors.Is(err, ErrCustomerNotFound) {
		log.Error("failed to look up phone", zap.Error(err))
		return nil, err
	}

	c.ID = s.newID()
	if _, err := s.repo.Create(ctx, c); err != nil {
		if !errors.Is(err, ErrPhoneTaken) {
			log.Error("failed to create customer", zap.Error(err))
		}
		return nil, err
	}

	created, err := s.repo.FindByID(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	log.Info("customer registered", zap.String("customer_id", created.ID))
	return s.session(created)
}

func (s *service) Login(ctx context.Context, phone string) (*Session, error) {
	phone = validation.NormalizePhone(phone)
	if !validation.ValidPhone(phone) {
		return nil, validation.FieldErrors{validation.FieldPhone: validation.MsgPhoneInvalid}
	}

	c, err := s.repo.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, ErrCustomerNotFound) {
			logger.FromCtx(ctx).Info("login for unknown phone")
		}
		return nil, err
	}

	logger.FromCtx(ctx).Info("customer signed in", zap.String("customer_id", c.ID))
	return s.session(c)
}

func (s *service) Profile(ctx context.Context, id string) (*Customer, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) UpdateProfile(ctx context.Context, id string, in ProfileInput) (*Customer, error) {
	set, fieldErrs := profilePatch(in)
	if len(fieldErrs) > 0 {
		return nil, fieldErrs
	}
	if len(set) > 0 {
		if err := s.repo.Update(ctx, id, set); err != nil {
			return nil, err
		}
		logger.FromCtx(ctx).Info("profile updated", zap.String("customer_id", id))
	}
	return s.repo.FindByID(ctx, id)
}

func (s *service) session(c *Customer) (*Session, error) {
	token, expires, err := s.tokens.Issue(c.ID, c.Phone)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expires, Customer: c}, nil
}

func validateSignup(in SignupInput) (*Customer, validation.FieldErrors) {
	errs := validation.FieldErrors{}

	name := strings.TrimSpace(in.Name)
	if len([]rune(name)) < 2 {
		errs[validation.FieldName] = validation.MsgNameRequired
	}
	phone := validation.NormalizePhone(in.Phone)
	if !validation.ValidPhone(phone) {
		errs[validation.FieldPhone] = validation.MsgPhoneInvalid
	}
	email := strings.TrimSpace(in.Email)
	if email != "" && !validation.ValidEmail(email) {
		errs[validation.FieldEmail] = validation.MsgEmailInvalid
	}
	address := strings.TrimSpace(in.Address)
	if address != "" && len([]rune(address)) < minAddressLength {
		errs[validation.FieldAddress] = validation.MsgAddressRequired
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return &Customer{
		Name:    name,
		Phone:   phone,
		Email:   strings.ToLower(email),
		Address: address,
	}, nil
}

func profilePatch(in ProfileInput) (store.Document, validation.FieldErrors) {
	set := store.Document{}
	errs := validation.FieldErrors{}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if len([]rune(name)) < 2 {
			errs[validation.FieldName] = validation.MsgNameRequired
		}
		set["name"] = name
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email != "" && !validation.ValidEmail(email) {
			errs[validation.FieldEmail] = validation.MsgEmailInvalid
		}
		set["email"] = strings.ToLower(email)
	}
	if in.Address != nil {
		address := strings.TrimSpace(*in.Address)
		if address != "" && len([]rune(address)) < minAddressLength {
			errs[validation.FieldAddress] = validation.MsgAddressRequired
		}
		set["address"] = address
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return set, nil
}
