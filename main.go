package main

import "github.com/eytanadler/TOASTY/cmd"

func main() {
	cmd.Execute()
}
