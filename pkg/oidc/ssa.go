package oidc

// SSARequest is the body of a POST to the ssa endpoint, creating a
// software statement assertion for later use in dynamic registration.
type SSARequest struct {
	SoftwareID    string              `json:"software_id"`
	OrgID         string              `json:"org_id"`
	Description   string              `json:"description,omitempty"`
	SoftwareRoles []string            `json:"software_roles,omitempty"`
	GrantTypes    []GrantType         `json:"grant_types,omitempty"`
	Scope         SpaceDelimitedArray `json:"scope,omitempty"`

	// Expiration as unix timestamp. Zero means the server default.
	Expiration Time `json:"expiration,omitempty"`

	// OneTimeUse marks the assertion as invalid after its first
	// successful registration.
	OneTimeUse bool `json:"one_time_use,omitempty"`

	// RotateSSA requests that previous assertions of the same software_id
	// are revoked when this one is issued.
	RotateSSA bool `json:"rotate_ssa,omitempty"`
}

// SSAResponse returns the signed software statement.
type SSAResponse struct {
	SSA string `json:"ssa"`
}

// SSAClaims is the JWT payload of a software statement assertion.
type SSAClaims struct {
	Issuer   string `json:"iss"`
	JWTID    string `json:"jti"`
	IssuedAt Time   `json:"iat"`
	Expiration Time `json:"exp,omitempty"`

	SSARequest
}

// SSAInfo is the management view of a stored assertion.
type SSAInfo struct {
	JWTID     string `json:"jti"`
	CreatedAt Time   `json:"iat"`
	ExpiresAt Time   `json:"exp,omitempty"`
	Revoked   bool   `json:"revoked,omitempty"`

	SSARequest
}
