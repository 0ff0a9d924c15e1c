package main

import "github.com/horia141/jupiter-sub011/cmd/jupiter/root"

func main() {
	root.Execute()
}
