package config

type WorkerKeyStruct struct {
	AvailabilityRefreshQueue string
}

var WorkerKey = &WorkerKeyStruct{
	AvailabilityRefreshQueue: "availability_refresh_queue",
}
