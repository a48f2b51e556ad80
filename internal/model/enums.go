package model

type Condition string

const (
	ConditionExcellent Condition = "Excellent"
	ConditionGood      Condition = "Good"
	ConditionFair      Condition = "Fair"
	ConditionPoor      Condition = "Poor"
)

var Conditions = []Condition{ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor}

func (c Condition) Valid() bool {
	for _, v := range Conditions {
		if v == c {
			return true
		}
	}
	return false
}

type Category string

const (
	CategoryElectronics   Category = "Electronics"
	CategoryAppliances    Category = "Appliances"
	CategoryFurniture     Category = "Furniture"
	CategoryCollectibles  Category = "Collectibles & Art"
	CategoryJewelry       Category = "Jewelry & Valuables"
	CategoryMiscellaneous Category = "Miscellaneous"
)

var Categories = []Category{
	CategoryElectronics,
	CategoryAppliances,
	CategoryFurniture,
	CategoryCollectibles,
	CategoryJewelry,
	CategoryMiscellaneous,
}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

type Room string

const (
	RoomLiving  Room = "Living room"
	RoomDining  Room = "Dining room"
	RoomKitchen Room = "Kitchen"
	RoomBedroom Room = "Bedroom"
	RoomBath    Room = "Bathroom"
	RoomGarage  Room = "Garage"
	RoomStorage Room = "Storage"
)

var Rooms = []Room{RoomLiving, RoomDining, RoomKitchen, RoomBedroom, RoomBath, RoomGarage, RoomStorage}

func (r Room) Valid() bool {
	for _, v := range Rooms {
		if v == r {
			return true
		}
	}
	return false
}
