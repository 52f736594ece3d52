package main

import "github.com/robotfashion/dataset-loader/cmd"

func main() {
	cmd.Execute()
}
