// Command vtester runs clock scenarios on a virtual tester.
package main

import "github.com/sarchlab/vtester/vtester/cmd"

func main() {
	cmd.Execute()
}
