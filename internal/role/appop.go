package role

import (
	"github.com/kdrag0n/platform-packages-modules-Permission/internal/appops"
	"github.com/kdrag0n/platform-packages-modules-Permission/internal/model"
)

// AppOp is an app-op a role sets on its holder.
type AppOp struct {
	Name string
	// MaxSDK limits the op to devices at or below this SDK; 0 means no limit.
	MaxSDK int
	Mode   appops.Mode
}

func (o AppOp) availableOn(sdk int) bool {
	return o.MaxSDK == 0 || sdk <= o.MaxSDK
}

// Grant sets the op to its role mode. It returns false when the op does
// not apply to the device or the mode was already set.
func (o AppOp) Grant(pkg string, user model.UserID, ctx *Context) (bool, error) {
	if !o.availableOn(ctx.SDK) || ctx.AppOps == nil {
		return false, nil
	}
	return ctx.AppOps.SetMode(user, pkg, o.Name, o.Mode)
}

// Revoke resets the op to its default mode.
func (o AppOp) Revoke(pkg string, user model.UserID, ctx *Context) (bool, error) {
	if !o.availableOn(ctx.SDK) || ctx.AppOps == nil {
		return false, nil
	}
	return ctx.AppOps.SetMode(user, pkg, o.Name, appops.DefaultMode(o.Name))
}
