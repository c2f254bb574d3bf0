package authgate

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

// Options is the concrete Config used by the daemons; library consumers can
// supply their own Config implementation instead.
type Options struct {
	SigningSecret    string `yaml:"signing_secret" json:"signing_secret"`
	EncryptionSecret string `yaml:"encryption_secret" json:"encryption_secret"`
	TokenTTL         int    `yaml:"token_ttl" json:"token_ttl"` // seconds
	Issuer           string `yaml:"issuer" json:"issuer"`
	AuthScheme       string `yaml:"auth_scheme" json:"auth_scheme"`
}

var _ Config = Options{}

func (o Options) GetSigningSecret() string    { return o.SigningSecret }
func (o Options) GetEncryptionSecret() string { return o.EncryptionSecret }
func (o Options) GetIssuer() string           { return o.Issuer }

func (o Options) GetTokenTTL() int {
	if o.TokenTTL <= 0 {
		return 3600
	}
	return o.TokenTTL
}

func (o Options) GetAuthScheme() string {
	if o.AuthScheme == "" {
		return BearerScheme
	}
	return o.AuthScheme
}

// Validate enforces the presence of both secrets before a process serves
// traffic. Key length and decodability are checked by the codec and signer
// constructors, which are authoritative.
func (o Options) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.SigningSecret, validation.Required),
		validation.Field(&o.EncryptionSecret, validation.Required),
		validation.Field(&o.TokenTTL, validation.Min(0)),
	)
}
