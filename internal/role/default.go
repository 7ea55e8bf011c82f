package role

import "github.com/kdrag0n/platform-packages-modules-Permission/internal/model"

// DefaultBehavior is used by roles without custom behavior.
type DefaultBehavior struct{}

func (DefaultBehavior) IsAvailableAsUser(*Role, model.UserID, *Context) bool { return true }

func (DefaultBehavior) IsVisibleAsUser(*Role, model.UserID, *Context) bool { return true }

func (DefaultBehavior) PrepareApplicationPreferenceAsUser(*Role, *Preference, model.PackageInfo, model.UserID, *Context) {
}

func (DefaultBehavior) ConfirmationMessage(*Role, string, model.UserID, *Context) string { return "" }

func (DefaultBehavior) FallbackHolder(*Role, model.UserID, *Context) string { return "" }

func (DefaultBehavior) Grant(*Role, string, model.UserID, *Context) error { return nil }

func (DefaultBehavior) Revoke(*Role, string, model.UserID, *Context) error { return nil }
