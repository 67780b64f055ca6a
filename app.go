package main

import "github.com/masmgr/commitpage/cmd"

func main() {
	cmd.Run()
}
