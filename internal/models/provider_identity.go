package models

// ProviderIdentity is the provider's current-user profile.
type ProviderIdentity struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	GlobalName    string `json:"global_name,omitempty"`
	Discriminator string `json:"discriminator,omitempty"`
	Avatar        string `json:"avatar,omitempty"`
	Locale        string `json:"locale,omitempty"`
	Email         string `json:"email,omitempty"`
	Verified      bool   `json:"verified,omitempty"`
}

// PreferredName returns the name the provider would show for this user.
func (p *ProviderIdentity) PreferredName() string {
	if p.GlobalName != "" {
		return p.GlobalName
	}
	return p.Username
}
