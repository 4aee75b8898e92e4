package main

import "github.com/mkhoatd/redmine-tracker/cmd"

func main() {
	cmd.Execute()
}
