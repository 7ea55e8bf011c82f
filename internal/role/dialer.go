package role

import (
	"fmt"

	"github.com/kdrag0n/platform-packages-modules-Permission/internal/appops"
	"github.com/kdrag0n/platform-packages-modules-Permission/internal/model"
)

// PermissionAccessCallAudio is requested by dialers that want call audio.
const PermissionAccessCallAudio = "android.permission.ACCESS_CALL_AUDIO"

// ResourceShowDialerRole hides the dialer role when false.
const ResourceShowDialerRole = "config_showDialerRole"

// SummarySystemDefault marks the preinstalled dialer in the picker.
const SummarySystemDefault = "System default"

var accessCallAudioOp = AppOp{
	Name: appops.OpAccessCallAudio,
	Mode: appops.ModeAllowed,
}

// DialerBehavior is the behavior of the default phone app role.
type DialerBehavior struct{}

// IsAvailableAsUser requires voice calling hardware.
func (DialerBehavior) IsAvailableAsUser(_ *Role, _ model.UserID, ctx *Context) bool {
	return ctx.Telephony != nil && ctx.Telephony.IsVoiceCapable()
}

// IsVisibleAsUser follows the config_showDialerRole resource.
func (DialerBehavior) IsVisibleAsUser(_ *Role, _ model.UserID, ctx *Context) bool {
	return ctx.Resources != nil && ctx.Resources.Bool(ResourceShowDialerRole)
}

// PrepareApplicationPreferenceAsUser labels the system dialer.
func (DialerBehavior) PrepareApplicationPreferenceAsUser(_ *Role, pref *Preference, app model.PackageInfo, _ model.UserID, ctx *Context) {
	if ctx.Telecom != nil && app.Name == ctx.Telecom.SystemDialerPackage() {
		pref.Summary = SummarySystemDefault
	} else {
		pref.Summary = ""
	}
}

func (DialerBehavior) ConfirmationMessage(_ *Role, pkg string, user model.UserID, ctx *Context) string {
	return encryptionUnawareConfirmation(pkg, user, ctx)
}

// FallbackHolder is the first installed default holder.
func (DialerBehavior) FallbackHolder(r *Role, user model.UserID, ctx *Context) string {
	holders := r.DefaultHoldersAsUser(user, ctx)
	if len(holders) == 0 {
		return ""
	}
	return holders[0]
}

// Grant allows call audio access if the package requests it.
func (DialerBehavior) Grant(_ *Role, pkg string, user model.UserID, ctx *Context) error {
	if ctx.Packages == nil {
		return nil
	}
	info, ok := ctx.Packages.Package(pkg, user)
	if !ok || !info.Requests(PermissionAccessCallAudio) {
		return nil
	}
	if _, err := accessCallAudioOp.Grant(pkg, user, ctx); err != nil {
		return fmt.Errorf("grant %s: %w", accessCallAudioOp.Name, err)
	}
	return nil
}

// Revoke always resets call audio access.
func (DialerBehavior) Revoke(_ *Role, pkg string, user model.UserID, ctx *Context) error {
	if _, err := accessCallAudioOp.Revoke(pkg, user, ctx); err != nil {
		return fmt.Errorf("revoke %s: %w", accessCallAudioOp.Name, err)
	}
	return nil
}
