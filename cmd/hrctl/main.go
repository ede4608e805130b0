// Command hrctl is the operator tool for inspecting and patching HR records
// and bootstrapping console users.
package main

func main() {
	Execute()
}
