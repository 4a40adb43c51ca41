package signalgrid

// DemoFleet returns the four-intersection downtown grid the control
// center starts with when no fleet is configured
func DemoFleet() []Intersection {
	return []Intersection{
		{
			ID:                 1,
			Name:               "Main St & 1st Ave",
			Phase:              PhaseGreen,
			Timer:              45,
			PhaseBudget:        60,
			Cars:               12,
			Trucks:             2,
			Bikes:              3,
			Buses:              1,
			QueueLength:        12,
			Status:             StatusOnline,
			Coordinates:        Coordinates{X: 30, Y: 40},
			SuggestedAction:    ActionExtendGreen,
			Confidence:         92,
			LastDecisionLabel:  "Extended green by 15s",
			LastDecisionReason: "High queue length detected, optimizing flow",
		},
		{
			ID:                 2,
			Name:               "Oak St & 2nd Ave",
			Phase:              PhaseRed,
			Timer:              25,
			PhaseBudget:        45,
			Cars:               8,
			Trucks:             1,
			Bikes:              1,
			QueueLength:        8,
			Status:             StatusOnline,
			Coordinates:        Coordinates{X: 50, Y: 60},
			SuggestedAction:    ActionMaintainCurrent,
			Confidence:         88,
			LastDecisionLabel:  "Maintained red signal",
			LastDecisionReason: "Cross traffic priority required",
		},
		{
			ID:                      3,
			Name:                    "Pine St & 3rd Ave",
			Phase:                   PhaseAmber,
			Timer:                   5,
			PhaseBudget:             10,
			Cars:                    15,
			Trucks:                  4,
			Bikes:                   2,
			Buses:                   2,
			QueueLength:             15,
			EmergencyVehiclePresent: true,
			Status:                  StatusOnline,
			Coordinates:             Coordinates{X: 70, Y: 30},
			SuggestedAction:         ActionSwitchToGreen,
			Confidence:              95,
			LastDecisionLabel:       "Emergency override - Green wave",
			LastDecisionReason:      "Emergency vehicle detected, creating priority corridor",
		},
		{
			ID:                 4,
			Name:               "Elm St & 4th Ave",
			Phase:              PhaseGreen,
			Timer:              28,
			PhaseBudget:        50,
			Cars:               6,
			Bikes:              5,
			QueueLength:        6,
			Status:             StatusOnline,
			Coordinates:        Coordinates{X: 20, Y: 70},
			SuggestedAction:    ActionReduceGreen,
			Confidence:         78,
			LastDecisionLabel:  "Reduced green time",
			LastDecisionReason: "Low traffic detected, balancing network",
		},
	}
}
