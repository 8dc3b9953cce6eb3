// Command sfctl inspects a truck's schedule, status and menu from the terminal.
package main

func main() {
	Execute()
}
