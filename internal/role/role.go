// Package role decides who may hold a role, how it is presented, and which
// side effects granting or revoking it has.
package role

import (
	"errors"

	"github.com/kdrag0n/platform-packages-modules-Permission/internal/appops"
	"github.com/kdrag0n/platform-packages-modules-Permission/internal/model"
)

// Role names with dedicated behaviors.
const (
	NameDialer = "android.app.role.DIALER"
)

var (
	ErrUnknownRole     = errors.New("unknown role")
	ErrRoleUnavailable = errors.New("role not available")
	ErrPackageNotFound = errors.New("package not installed")
	ErrNotHolder       = errors.New("package does not hold role")
)

// Telephony reports telephony hardware capabilities.
type Telephony interface {
	IsVoiceCapable() bool
}

// Telecom reports telecom stack configuration.
type Telecom interface {
	SystemDialerPackage() string
}

// Resources resolves boolean configuration resources.
type Resources interface {
	Bool(name string) bool
}

// Packages resolves installed packages.
type Packages interface {
	Package(name string, user model.UserID) (model.PackageInfo, bool)
	Packages(user model.UserID) []model.PackageInfo
}

// AppOps changes app-op modes.
type AppOps interface {
	SetMode(user model.UserID, pkg, op string, mode appops.Mode) (bool, error)
}

// Context carries the device services behaviors consult.
type Context struct {
	Telephony     Telephony
	Telecom       Telecom
	Resources     Resources
	Packages      Packages
	AppOps        AppOps
	FileEncrypted bool
	SDK           int
}

// Preference is the presentation of one candidate application.
type Preference struct {
	Package string `json:"package"`
	Summary string `json:"summary,omitempty"`
}

// Behavior customizes a role. Every method receives the role it serves.
type Behavior interface {
	IsAvailableAsUser(r *Role, user model.UserID, ctx *Context) bool
	IsVisibleAsUser(r *Role, user model.UserID, ctx *Context) bool
	PrepareApplicationPreferenceAsUser(r *Role, pref *Preference, app model.PackageInfo, user model.UserID, ctx *Context)
	ConfirmationMessage(r *Role, pkg string, user model.UserID, ctx *Context) string
	FallbackHolder(r *Role, user model.UserID, ctx *Context) string
	Grant(r *Role, pkg string, user model.UserID, ctx *Context) error
	Revoke(r *Role, pkg string, user model.UserID, ctx *Context) error
}

// Role is a named capability slot.
type Role struct {
	Name           string
	DefaultHolders []string
	Exclusive      bool
	Behavior       Behavior
}

func (r *Role) behavior() Behavior {
	if r.Behavior == nil {
		return DefaultBehavior{}
	}
	return r.Behavior
}

// DefaultHoldersAsUser returns the configured default holders installed
// for user, in configuration order.
func (r *Role) DefaultHoldersAsUser(user model.UserID, ctx *Context) []string {
	var out []string
	for _, pkg := range r.DefaultHolders {
		if ctx.Packages == nil {
			break
		}
		if _, ok := ctx.Packages.Package(pkg, user); ok {
			out = append(out, pkg)
		}
	}
	return out
}

func (r *Role) IsAvailableAsUser(user model.UserID, ctx *Context) bool {
	return r.behavior().IsAvailableAsUser(r, user, ctx)
}

func (r *Role) IsVisibleAsUser(user model.UserID, ctx *Context) bool {
	return r.behavior().IsVisibleAsUser(r, user, ctx)
}

// PreferenceFor builds the preference shown for app.
func (r *Role) PreferenceFor(app model.PackageInfo, user model.UserID, ctx *Context) Preference {
	pref := Preference{Package: app.Name}
	r.behavior().PrepareApplicationPreferenceAsUser(r, &pref, app, user, ctx)
	return pref
}

func (r *Role) ConfirmationMessage(pkg string, user model.UserID, ctx *Context) string {
	return r.behavior().ConfirmationMessage(r, pkg, user, ctx)
}

func (r *Role) FallbackHolder(user model.UserID, ctx *Context) string {
	return r.behavior().FallbackHolder(r, user, ctx)
}

func (r *Role) Grant(pkg string, user model.UserID, ctx *Context) error {
	return r.behavior().Grant(r, pkg, user, ctx)
}

func (r *Role) Revoke(pkg string, user model.UserID, ctx *Context) error {
	return r.behavior().Revoke(r, pkg, user, ctx)
}
