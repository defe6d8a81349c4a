package main

import "github.com/prasetyow/expense-reimbursement/cmd"

func main() {
	cmd.Execute()
}
