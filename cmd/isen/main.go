/*
Copyright © 2019 the Isen authors.
This file is part of Isen.

Isen is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Isen is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Isen.  If not, see <http://www.gnu.org/licenses/>.
*/

// Command isen is a command-line interface for plotting the output of the
// isentropic atmospheric flow model.
package main

import (
	"fmt"
	"os"

	"github.com/spatialmodel/isen/isenutil"
)

func main() {
	if err := isenutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
