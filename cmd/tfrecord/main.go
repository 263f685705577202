/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/ssargent/tfrecord/cmd/tfrecord/cmd"

func main() {
	cmd.Execute()
}
