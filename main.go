package main

import "github.com/ValentinKolb/credis/cmd"

func main() {
	cmd.Execute()
}
