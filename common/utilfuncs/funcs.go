package utilfuncs

import (
	"fmt"
	"os"
)

// PanicIfError stops the process when a startup step fails. It is meant for
// command setup only, never for request paths.
func PanicIfError(err error, message string) {
	if err != nil {
		fmt.Println("panic: " + message)
		fmt.Println(err.Error())
		os.Exit(1)
	}
}
