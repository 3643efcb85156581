package main

import "github.com/cardioview/dashboard-worker/worker"

func main() {
	worker.New().Run()
}
