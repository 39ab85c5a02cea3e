package main

import "asset-importer/cmd"

func main() {
	cmd.Execute()
}
