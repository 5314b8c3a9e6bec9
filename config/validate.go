package config

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
)

const minSigningKeyLength = 16

func (c BaseConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Server),
		validation.Field(&c.Auth),
		validation.Field(&c.Persistence),
	)
}

func (s Server) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Address, validation.Required),
		validation.Field(&s.LoginRateLimit, validation.Min(0)),
	)
}

func (a Auth) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.SigningKey,
			validation.Required,
			validation.Length(minSigningKeyLength, 0),
		),
		validation.Field(&a.SigningMethod,
			validation.Required,
			validation.By(func(value any) error {
				method, _ := value.(string)
				if !strings.HasPrefix(strings.ToUpper(method), "HS") {
					return errors.New("must be an HMAC method", errors.CategoryBadInput)
				}
				return nil
			}),
		),
		validation.Field(&a.TokenExpiration, validation.Required, validation.Min(1)),
		validation.Field(&a.TokenLookup, validation.Required),
	)
}

func (p Persistence) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Driver, validation.In("sqlite", "postgres")),
		validation.Field(&p.DSN, validation.Required),
		validation.Field(&p.MaxOpenConns, validation.Min(0)),
	)
}
