package main

import "planboard/internal/app"

// @title Planboard API
// @description Task management backend with a deadline notification engine.
// @version 1.0
func main() {
	app.Run()
}
