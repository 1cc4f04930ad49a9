// File: main.go
// License: Apache-2.0

package main

import "github.com/sendpath/sendpath/cmd"

func main() {
	cmd.Execute()
}
