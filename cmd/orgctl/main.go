// Command orgctl onboards a company from a YAML plan against the remote
// organization API, running the same three-stage wizard as the console.
package main

func main() {
	execute()
}
