// SPDX-License-Identifier: MPL-2.0

// servicecmd runs docker compose operations across groups of services.
package main

import cmd "github.com/servicecmd/servicecmd/cmd/servicecmd"

func main() {
	cmd.Execute()
}
