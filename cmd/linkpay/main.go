package main

import "github.com/vietddude/linkpay/internal/cli"

func main() {
	cli.Execute()
}
