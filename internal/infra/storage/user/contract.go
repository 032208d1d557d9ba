package user

import (
	"github.com/m04kA/SMC-SkiBookingService/pkg/dbmetrics"
)

type DBExecutor = dbmetrics.DBExecutor
