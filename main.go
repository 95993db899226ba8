/*
Copyright © 2021 Sentry

*/
package main

import (
	"github.com/getsentry/go-dlist/cmd"
)

func main() {
	cmd.Execute()
}
