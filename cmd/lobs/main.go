package main

import "github.com/goplus/lobs/cmd/lobs/internal"

func main() {
	internal.Execute()
}
