package datasets

import (
	"io"
	"os"
	"testing"

	"github.com/YuminosukeSato/lassoridge/pkg/errors"
	"github.com/YuminosukeSato/lassoridge/pkg/log"
)

func TestMain(m *testing.M) {
	log.SetProvider(log.NewZerologProvider(io.Discard, log.LevelError))
	errors.SetWarningHandler(func(error) {})
	os.Exit(m.Run())
}

const defaultCSV = `"","default","student","balance","income"
"1","No","No",729.5,44361.6
"2","No","Yes",817.2,12106.1
"3","Yes","No",1073.5,NA
"4","No","No",529.3,35704.5
"5","Yes","Yes",1500,20000
`
