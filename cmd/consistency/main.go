// Command consistency is the operator CLI of the correction engine. It runs
// detectors, previews and applies corrections, exports the cash ledger and
// mints API tokens against the same database the server uses.
package main

func main() {
	Execute()
}
