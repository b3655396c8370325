/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package main

import "github.com/edutate/vanessa/cmd"

func main() {
	cmd.Execute()
}
