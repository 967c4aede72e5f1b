// main is the entry point for the csmstyle CLI.
package main

import (
	"github.com/huangsam/csmstyle/cmd"
	"github.com/huangsam/csmstyle/internal/contract"
	"github.com/huangsam/csmstyle/internal/iocache"
)

func main() {
	cmd.SetStoreManager(iocache.Manager)
	err := cmd.Execute()
	iocache.CloseStores()
	if err != nil {
		contract.LogFatal("Command failed", err)
	}
}
