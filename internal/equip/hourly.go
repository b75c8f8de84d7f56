package equip

import (
	"fmt"

	"github.com/OCAP2/airfight/internal/campaign"
	"github.com/OCAP2/airfight/internal/item"
	"github.com/OCAP2/airfight/internal/message"
)

// Hourly advances installation countdowns of every slot, repairs aircraft in
// base and reloads what can be reloaded.
func (s *Service) Hourly() {
	s.UpdateInstallationDelays()
	s.RepairAircraft()

	s.state.Bases.Each(func(_ campaign.Handle, b *campaign.Base) bool {
		s.ReloadBaseWeapons(b)
		return true
	})
	s.state.Installations.Each(func(_ campaign.Handle, in *campaign.Installation) bool {
		s.ReloadInstallationWeapons(in)
		return true
	})
	for _, a := range s.state.PhalanxAircraft() {
		if a.InBase() {
			s.ReloadAircraftWeapons(a)
		}
	}
}

// UpdateInstallationDelays counts every installing or removing slot one hour
// down. Aircraft slots only progress while the aircraft is in base.
func (s *Service) UpdateInstallationDelays() {
	s.state.Installations.Each(func(_ campaign.Handle, in *campaign.Installation) bool {
		for i := range in.Batteries {
			s.updateDelay(&in.Batteries[i].Slot, nil, "installation "+in.Name)
		}
		return true
	})
	s.state.Bases.Each(func(_ campaign.Handle, b *campaign.Base) bool {
		for i := range b.Batteries {
			s.updateDelay(&b.Batteries[i].Slot, nil, b.Name)
		}
		for i := range b.Lasers {
			s.updateDelay(&b.Lasers[i].Slot, nil, b.Name)
		}
		return true
	})
	for _, a := range s.state.PhalanxAircraft() {
		if !a.InBase() {
			continue
		}
		for _, slot := range a.AllSlots() {
			s.updateDelay(slot, a, "")
		}
	}
}

func (s *Service) updateDelay(slot *campaign.Slot, a *campaign.Aircraft, site string) {
	switch {
	case slot.InstallationTime > 0:
		slot.InstallationTime--
		if slot.InstallationTime > 0 {
			return
		}
		if a != nil {
			UpdateAircraftStats(a)
			s.notice(fmt.Sprintf("%s was successfully installed into aircraft %s at %s.",
				slot.Item.Name, a.Name, s.homeName(a)))
			return
		}
		s.notice(fmt.Sprintf("%s was successfully installed at %s.", slot.Item.Name, site))

	case slot.InstallationTime < 0:
		slot.InstallationTime++
		if slot.InstallationTime < 0 {
			return
		}
		old := slot.Item
		s.RemoveItem(slot, false)
		if a != nil {
			UpdateAircraftStats(a)
			if slot.Item == nil {
				s.notice(fmt.Sprintf("%s was successfully removed from aircraft %s at %s.",
					old.Name, a.Name, s.homeName(a)))
			} else {
				s.notice(fmt.Sprintf("%s was successfully removed, starting installation of %s into aircraft %s at %s",
					old.Name, slot.Item.Name, a.Name, s.homeName(a)))
			}
			return
		}
		if slot.Item == nil {
			s.notice(fmt.Sprintf("%s was successfully removed from %s.", old.Name, site))
		}
	}
}

func (s *Service) homeName(a *campaign.Aircraft) string {
	if b, ok := s.state.GetBase(a.Homebase); ok {
		return b.Name
	}
	return "unknown base"
}

func (s *Service) notice(body string) {
	s.log.Debug("equipment update", "body", body)
	s.msgs.Post("Notice", body, message.Standard)
}

// RepairAircraft gives every aircraft in base RepairPerHour hit points back,
// up to its maximum.
func (s *Service) RepairAircraft() {
	for _, a := range s.state.PhalanxAircraft() {
		if !a.InBase() {
			continue
		}
		maxHP := int(a.Stats[item.StatDamage])
		if a.Damage < maxHP {
			a.Damage = min(a.Damage+RepairPerHour, maxHP)
		}
	}
}
