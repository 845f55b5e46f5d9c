package app

var CloneAvailability = cloneAvailability
