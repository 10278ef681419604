package main

import (
	"os"

	"github.com/zhengshuai-xiao/chunkshare/cmd"
	"github.com/zhengshuai-xiao/chunkshare/internal"
)

var logger = internal.GetLogger("chunkshare_main")

func main() {
	err := cmd.Main(os.Args)
	if err != nil {
		logger.Fatal(err)
	}
}
