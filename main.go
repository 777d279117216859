package main

import "github.com/francois-cf/guidefacile/cmd"

func main() {
	cmd.Execute()
}
