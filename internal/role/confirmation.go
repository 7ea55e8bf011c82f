package role

import "github.com/kdrag0n/platform-packages-modules-Permission/internal/model"

// EncryptionUnawareMessage warns that a package cannot run before first unlock.
const EncryptionUnawareMessage = "Note: If you restart your device and have a screen lock set, this app can’t start until you unlock your device."

// encryptionUnawareConfirmation returns EncryptionUnawareMessage when the
// device is file-encrypted and pkg is installed but not direct-boot aware.
func encryptionUnawareConfirmation(pkg string, user model.UserID, ctx *Context) string {
	if !ctx.FileEncrypted || ctx.Packages == nil {
		return ""
	}
	info, ok := ctx.Packages.Package(pkg, user)
	if !ok || info.DirectBootAware {
		return ""
	}
	return EncryptionUnawareMessage
}
