package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fulldump/goconfig"

	"github.com/fulldump/percoladb/bootstrap"
	"github.com/fulldump/percoladb/configuration"
)

var banner = `
______                    _       ____________
| ___ \                  | |      |  _  \ ___ \
| |_/ /__ _ __ ___ ___   | | __ _ | | | | |_/ /
|  __/ _ \ '__/ __/ _ \  | |/ _` + "`" + ` || | | | ___ \
| | |  __/ |  | (_| (_) || | (_| || |/ /| |_/ /
\_|  \___|_|   \___\___/ |_|\__,_||___/ \____/
                         version ` + bootstrap.VERSION + `
`

func main() {

	c := configuration.Default()
	goconfig.Read(&c)

	if c.Version {
		fmt.Println("Version:", bootstrap.VERSION)
		return
	}

	if c.ShowBanner {
		fmt.Println(banner)
	}

	if c.ShowConfig {
		e := json.NewEncoder(os.Stdout)
		e.SetIndent("", "    ")
		e.Encode(c)
	}

	start, _ := bootstrap.Bootstrap(&c)

	start()
}
