package sweth

import "github.com/ethereum/go-ethereum/common"

// PermissionSource answers the engine's authorization questions. Every
// method is consulted fresh on each call; implementations must not cache.
type PermissionSource interface {
	CoreMethodsPaused() bool
	BotMethodsPaused() bool
	IsWhitelisted(addr common.Address) bool
	IsAdmin(addr common.Address) bool
}

// PauseAuthority is the part of the access control manager the engine reads.
type PauseAuthority interface {
	CoreMethodsPaused() bool
	BotMethodsPaused() bool
	IsAdmin(addr common.Address) bool
}

// Membership is the part of the whitelist the engine reads.
type Membership interface {
	IsWhitelisted(addr common.Address) bool
}

// Permissions combines the manager and the whitelist into a PermissionSource.
type Permissions struct {
	authority PauseAuthority
	members   Membership
}

// NewPermissions creates the production permission source.
func NewPermissions(authority PauseAuthority, members Membership) *Permissions {
	return &Permissions{authority: authority, members: members}
}

func (p *Permissions) CoreMethodsPaused() bool { return p.authority.CoreMethodsPaused() }
func (p *Permissions) BotMethodsPaused() bool  { return p.authority.BotMethodsPaused() }

func (p *Permissions) IsWhitelisted(addr common.Address) bool {
	return p.members.IsWhitelisted(addr)
}

func (p *Permissions) IsAdmin(addr common.Address) bool {
	return p.authority.IsAdmin(addr)
}
