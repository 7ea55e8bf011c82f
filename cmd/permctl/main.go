// permctl groups the permissions of installed Android packages and manages
// role holders against a YAML package catalog.
//
// Usage:
//
//	permctl init
//	permctl groups com.android.dialer
//	permctl watch com.android.dialer --metrics-addr :9464
//	permctl role assign android.app.role.DIALER com.android.dialer
package main

import "github.com/kdrag0n/platform-packages-modules-Permission/internal/cli"

func main() {
	cli.Execute()
}
